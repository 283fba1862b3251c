// Package application provides application initialization and dependency
// wiring. It encapsulates configuration resolution, logger registry setup,
// and repository access, making the main package cleaner and more focused on
// CLI parsing and orchestration.
package application
