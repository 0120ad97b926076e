// Package service defines the application-facing operations of the
// snakes-and-ladders simulator and their data transfer types.
//
// SimulationService is the single entry point used by every transport (REST,
// WebSocket broadcasting, MCP, CLI): it manages interactive game sessions,
// plays turns, runs games to completion, launches batch simulations, and
// exposes board configurations. The SessionManager, ConfigManager and
// ResultArchive interfaces decouple the service from its storage
// implementations in the session and config packages.
package service
