// Package mongo manages the MongoDB client used by the document-store inbox
// storage: env-driven configuration, connect with retry, and a readiness
// probe for the health endpoint.
package mongo
