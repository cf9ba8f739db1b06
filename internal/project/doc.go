// Package project loads per-project asset configuration.
//
// Project File:
//
// Each project keeps a project.toml at its root:
//
//	project = "demo_project"
//
//	[dev-assets]
//	branch = "prod"
//
// The project name scopes every asset the project registers. The optional
// dev-assets table redirects reads of non-production runs to the named
// branch, letting development code consume production assets without
// writing to them.
//
// Discovery:
//
// Load reads an exact path. Find walks upward from a starting directory
// until it sees a project.toml, mirroring how runs launched from nested
// directories locate their project root.
package project
