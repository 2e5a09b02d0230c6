/*
Package bridge implements the message router for host <-> content-surface
communication.

# Overview

Each content surface gets one Instance. Inbound raw messages flow through a
fixed pipeline:

	raw -> origin gate -> envelope decode -> reducer -> encode -> callback check -> sink

The reducer is a pure transition function: it mutates the per-surface State
and returns at most one Effect, a descriptor of the reply to deliver. It
never calls the sink itself, so transitions are testable without a live
rendering surface.

# Concurrency

One goroutine drains the action queue per instance, so no two reductions for
the same surface interleave. A second goroutine dispatches effects in the
order their actions were accepted, giving FIFO replies per instance. Separate
instances share nothing but the immutable security gate and may run
concurrently.

# Failure Semantics

Payload-decode failures are recovered into success=false replies. Untrusted
origins are dropped before decoding. Malformed envelopes with a recoverable
callback name post a rejection action, so the generic failure reply queues
behind replies to messages accepted earlier. Replies addressed
to a callback name that fails the injection grammar are dropped whole.
Delivery failures are logged and forgotten; nothing here is fatal to the
process.
*/
package bridge
