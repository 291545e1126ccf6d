// Package session implements the transform session state machine.
//
// # Controller
//
// A [Controller] owns one TransformSession: the selected preset, the selected media with its
// preview locator, a processing flag, and an integer progress in [0,100]. Transitions:
//
//	Idle ──SelectMedia──▶ MediaSelected ──SelectStyle──▶ Ready ──StartTransform──▶ Processing ──(100%)──▶ Complete
//	  ▲                                                                                                     │
//	  └──────────────────────────────────────── ClearMedia (from any state) ───────────────────────────────┘
//
// Every transition, including scheduled progress ticks, runs under the controller's mutex, so the
// state machine observes one logical order of events.
//
// # Scheduling
//
// Progress advances through a [Scheduler]. Each run holds a cancel function that is called when the
// media is cleared or replaced, when a new run starts, when progress reaches 100, and on [Controller.Close].
// Ticks belonging to an older run are ignored, so a late tick never touches a newer run or a closed session.
//
// # Notifications
//
// Subscribers registered with [Controller.Subscribe] receive an [Event] after each change, in the order
// the changes happened. Callbacks run after the state lock is released and may read [Controller.Snapshot],
// but must not call mutating methods synchronously.
//
// # Store
//
// [Store] keeps the controllers of concurrent web sessions, keyed by ID, and tears down idle ones.
package session
