// Package pipeline runs the hhapply command chains. Every pipeline follows
// the same frame: acquire the run lock, reset its dedicated run log, invoke
// the applier or tracker (native or external command), and for the send
// pipeline classify the result into the dated review artifacts. A file lock
// under the log directory serializes runs so two invocations never interleave
// writes to the same run log.
package pipeline
