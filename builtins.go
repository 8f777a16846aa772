package jt808

// registerBuiltins installs the handlers for every message ID this package
// knows natively. Application code can still AppendEncoder/AppendDecoder
// additional IDs, or OverrideEncoder/OverrideDecoder one of these, until the
// registry is marked running.
func registerBuiltins(r *Registry) {
	registerGeneralHandlers(r)
	registerRegistrationHandlers(r)
	registerLocationHandlers(r)
	registerParameterHandlers(r)
	registerUpgradeHandlers(r)
	registerAreaHandlers(r)
	registerTrackingHandlers(r)
	registerMultimediaHandlers(r)
	registerMiscHandlers(r)
}
