// Package connection provides the RESP client used by minikv-cli.
package connection
