// Package config provides the configuration for draggable.
//
// A configuration is assembled from three sources, later ones overriding
// earlier ones:
//
//  1. built-in defaults
//  2. the scene file (TOML or YAML, chosen by extension)
//  3. DRAGGABLE_* environment variables
//
// The merged map is decoded strictly into Config, so misspelled keys are
// reported instead of silently ignored, and then validated as a whole.
//
// A scene file describes the boxes on screen and how each one drags:
//
//	[mouse]
//	emulate_touch = true
//
//	[[box]]
//	id = "desk"
//	left = 0
//	top = 0
//	width = 60
//	height = 20
//
//	[[box]]
//	id = "notes"
//	label = "Notes"
//	left = 4
//	top = 3
//	width = 24
//	height = 8
//	handle = "title"
//	bounding_element = "desk"
//	bounding_margin = { top = 1, left = 1, bottom = 1, right = 1 }
//
// BoxConfig.DragOptions turns a box entry into drag.Options and
// BoxConfig.SceneBox into the scene.Box that is drawn.
package config
