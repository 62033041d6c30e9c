// Package core provides the business logic for spreadsheet-to-config sync.
//
// The package holds all domain logic independent of the sheet transport,
// the entity store backend and any UI. It can be used by the CLI, the HTTP
// server or tests without modification.
//
// # Kind Registry
//
// Entity kinds are registered at init time using [Register]. Each
// [KindDefinition] names the sheet tab and maps one row to a [Spec]:
//
//	core.Register(KindDefinition{
//	    Info:  KindInfo{Key: "menu", Group: "Navigation", Table: "Menus"},
//	    Map:   mapMenu,
//	    Order: 30,
//	})
//
// The built-in kinds live in the kinds subpackage.
//
// # Sync Runs
//
// [Run] classifies each row with [Classify] and then creates, updates or
// skips it. Every row yields exactly one [Outcome]; failures on one row
// never stop the run. [RunWorkflows] builds workflow graphs with
// [BuildWorkflowGraphs] and merges them into the persisted graph.
//
// [Service] ties a sheet source and an entity store together, and a
// [RunLimiter] keeps concurrent runs from racing on the store.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - SRC001-SRC002: Sheet source errors
//   - VAL001-VAL005: Row validation errors
//   - STO001-STO004: Entity store errors
//   - CFG001, KND001, RUN001: Configuration, kind and run errors
package core
