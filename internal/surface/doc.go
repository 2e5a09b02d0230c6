/*
Package surface provides an in-process content surface backed by goja.

# Overview

A Runtime is a hardened JavaScript VM standing in for the rendering surface:
page scripts run inside it, and bridge replies are delivered to it as
synthesized `callback(json);` calls through Evaluate. The VM exposes exactly
one host-facing entry point, webbridge.postMessage, which is the
surface-to-host direction of the bridge.

# Security Model

Surface scripts cannot:
  - Access require/process/module (removed at setup)
  - Schedule host work (timers are inert)
  - Run past the configured timeout (interrupt-based)

The runtime is the delivery end of the bridge's injection boundary: only
callback names that passed the validator are ever interpolated into scripts
evaluated here.

# Testing

RegisterCallback installs an observable global function, so tests assert on
the exact JSON a callback received without a real rendering engine.
*/
package surface
