/*
Package protocol implements the bridge wire format.

# Overview

The content surface and the host exchange JSON envelopes. Inbound:

	{ "type": "<tag>", "callback": "<fn>?", "data": { ... }? }

Outbound, delivered as a synthesized call `callback(json);`:

	{ "success": <bool>, "message": "<string>", "data": { ... }? }

# Two-Phase Decoding

Envelope decoding and payload decoding are independent steps:

 1. DecodeRequest validates the type tag against a closed enumeration and
    captures callback and raw payload. Unknown tags fail here.
 2. Per-type accessors (GreetingPayload, OpenURLPayload, ToastPayload) resolve
    the raw payload on demand. A shape mismatch reports ok=false; it never
    aborts the request as a whole.

# Determinism

EncodeResponse sorts keys at every nesting level so a reply can be asserted
byte-for-byte in tests and reproduced across runs.

# Injection Safety

IsValidCallbackName is the security boundary between a reply and the script
that delivers it. Only names matching the strict identifier grammar ever reach
the evaluation sink.
*/
package protocol
