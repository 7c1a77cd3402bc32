// Package agent contains the two kinds of participant the engine drives:
//
//  1. Worker – a bounded reason/act loop over a private scratch space that
//     produces exactly one contribution per invocation
//  2. Router – a constrained chooser whose only output is the next worker
//     name or FINISH
//
// Both consume a model.Model and never touch the shared transcript; the
// engine owns the conversation state and merges their outputs.
//
// The built-in roles (Researcher, CartHandler) wire the cart and search
// tools to a Worker with the prompts the shopping assistant uses.
package agent
