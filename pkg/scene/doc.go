// Package scene converts domain chains into the flat element list consumed
// by layout, highlighting, interaction, and rendering.
//
// # Namespacing
//
// When more than one chain is rendered together, every node and edge id is
// prefixed with its owning chain's id ("{chainID}:{originalID}") so merged
// views stay collision-free. A single chain keeps its raw ids.
//
// # Dangling Edges
//
// An edge whose endpoints do not resolve after namespacing is dropped
// silently. Partially linked backend data is expected, never fatal.
//
// # Positions
//
// A node carrying an explicit stored position seeds its element with that
// exact coordinate; the layout treats it as a starting point, not a
// constraint. All other elements are left unpositioned for the layout
// algorithm to place.
//
// Building a scene is pure: the model is rebuilt from scratch whenever the
// input chains change, and layout-derived coordinates never flow back into
// the domain entities.
package scene
