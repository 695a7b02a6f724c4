// Package game implements a single-player rummy session.
//
// The main type is Session, which owns the deck, the hand and its selection,
// the discard pile, the committed melds and the score. Every action either
// commits fully or returns an error and leaves the session untouched.
//
// Actions can be invoked directly on the session or through Dispatch with an
// Action value, which is how the terminal and WebSocket front ends drive it.
package game
