// Package request contains immutable definitions of HTTP requests and their composition.
//
// An HTTPRequest describes one HTTP call, it is sent by a Sender,
// for example by the client.Client.
//
// An APIRequest[R] wraps one or more Sendable values and maps them to a typed result R.
// Nothing is sent until the Send method is called, so the definitions can be freely
// combined and sent concurrently by Parallel, WaitGroup or RunGroup.
package request
