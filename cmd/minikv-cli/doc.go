// Package main provides the entry point for minikv-cli, which sends one
// command to a minikv server and prints the reply.
//
// Examples:
//
//	minikv-cli ping
//	minikv-cli --server 10.0.0.5:6379 set session:42 alice --px 60000
//	minikv-cli -o json get session:42
//
// The exit status is 1 when the server answers with an error or cannot be
// reached, and 2 on a usage error.
package main
