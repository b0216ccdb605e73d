// Package menu turns a query into the list of items the user picks from.
//
// There are three entry points, each with its own ordered Registry of routes:
//
//	MainFlow      onboarding, the "s" settings shortcut, job search
//	SettingsFlow  username, API key, hostname, cache maintenance
//	BuildFlow     job overview, build parameters, parameter editors, history
//
// A flow parses its query once, then the first route whose Match accepts the
// parsed value builds the items. Menus never return errors: failures are
// logged through Env.Log and rendered as a diagnostic item instead.
package menu
