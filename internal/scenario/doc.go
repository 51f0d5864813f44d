// Package scenario holds scripted producer/consumer walkthroughs of the
// transfer protocol. Each one runs against a chosen allocator and returns
// the trace of every transition, the allocator counters and, for the
// walkthroughs that deliberately break the protocol, the fatal error.
package scenario
