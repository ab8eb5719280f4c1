// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services never touch files or the network directly; every side effect
// goes through a driven port.
package services
