/*
Package security decides whether the host talks to a given content origin.

Two questions are answered, both pure predicates over an immutable policy:

  - IsNavigationAllowed: may the surface render content from this host?
  - IsBridgeOriginTrusted: may a bridge message from this origin be processed?

Matching is suffix-based on registered labels: "apple.com" covers itself and
any dotted subdomain, while "notapple.com" never matches. Untrusted bridge
origins are dropped before their content is decoded or logged.
*/
package security
