// Package errors provides structured error types for better observability
// and programmatic error handling across the application.
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeCommandFailed,
//	    "failed to create cluster",
//	    cmdErr,
//	    map[string]interface{}{
//	        "command": "kind",
//	        "cluster": clusterName,
//	    },
//	)
package errors
