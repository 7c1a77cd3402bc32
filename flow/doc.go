// Package flow executes the action calls requested in one worker iteration.
//
// Calls run strictly in the order the model gave them and every call yields
// exactly one core.ActionResult. Collaborator failures, unknown tools,
// malformed arguments and panics are converted into failed results so the
// next reasoning step can react to them.
package flow
