/*
Package ports defines the ports (interfaces) of the mission workflow engine.

These interfaces decouple the repository from its storage and let
presentation adapters (HTTP, MCP, CLI) depend on the command/query contract
rather than on a concrete implementation.

# Key Interfaces

  - MissionService: the command/query contract consumed by presentation layers.
  - MissionStore: owns mission records and hands out snapshot copies.
  - EventPublisher: fans transition events out to external subscribers.
*/
package ports
