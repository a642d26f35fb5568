/*
Package workflow declares the static mission workflow and the pure transition
function that evaluates it.

The graph is fixed at build time:

	Created ─assign─► Assigned ─start─► InProgress ─submit_review─► UnderReview ─approve─► Completed ─close─► Closed
	                                     │      ▲
	                                pause│      │resume
	                                     ▼      │
	                                     OnHold ─┘

Closed is the only terminal state. Apply never mutates anything; callers own
the Mission and decide what to do with the computed state.
*/
package workflow
