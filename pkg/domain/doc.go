/*
Package domain contains the core domain models of the mission workflow engine.

It defines the closed enumerations of workflow States and Triggers, the Mission
entity with its append-only history, the error kinds returned by the engine and
the lifecycle events emitted after each mutation. This package is kept pure and
free of I/O, following Hexagonal Architecture principles.

# Key Entities

  - State: one of Created, Assigned, InProgress, OnHold, UnderReview, Completed, Closed.
  - Trigger: one of assign, start, pause, resume, submit_review, approve, close.
  - Mission: an addressable unit of work (identity, title, description, state, history).
  - HistoryEntry: a single applied transition (trigger, from, to, timestamp).
  - TransitionEvent: what observers receive after a successful transition.
*/
package domain
