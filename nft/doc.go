// Package nft verifies the lifecycle of token cells.
//
// A token cell carries a type script whose 97-byte args bind it to one factory
// cell and give it a unique id. For each token identity a transaction touches,
// verification:
//
//  1. checks the args layout,
//  2. classifies the transition as Create, Update or Destroy by counting
//     matching inputs and outputs,
//  3. runs the matching entry point of every component of a composed Script.
//
// Verification is a pure predicate over a cell.View; nothing is persisted and
// every rejection is a *Error with a stable Kind and RuleID.
package nft
