// Package action executes the terminal action strings that menu items carry
// in their Arg field: saving settings, clearing the job cache, queueing
// builds and opening URLs.
package action
