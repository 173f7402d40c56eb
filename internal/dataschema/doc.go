// Package dataschema читает structured output pw.x (data-file-schema XML).
//
// Workflow использует только итоговую геометрию после релаксации:
// она передаётся всем следующим стадиям.
package dataschema
