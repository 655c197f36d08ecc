// Package commands implements the dividis CLI. Each invocation builds one
// workspace whose token is persisted under the "token" key, so a login
// survives until logout or expiry.
package commands
