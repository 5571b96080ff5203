// Package engine contains the adaptive session core of BrainRush: the
// tension engine, the weighted game selector, and the session orchestrator
// state machine that ties score, streak, and difficulty together.
package engine
