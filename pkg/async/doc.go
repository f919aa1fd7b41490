// Package async provides a minimal Future abstraction over goroutines.
//
// The dispatcher uses it to run independent delivery-channel attempts in
// parallel and await each one with its own deadline:
//
//	f := async.Async(ctx, params, sendEmail)
//	res, err := f.AwaitWithTimeout(5 * time.Second)
package async
