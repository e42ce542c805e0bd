// Package value defines the tagged union exchanged with the SQLite engine:
// parameters bound to prepared statements and the dynamically typed cells
// read back from result rows. It includes:
//   - Value and Kind, with constructors for every storage form
//   - FromAny: conversion of dynamic script values at the binding boundary
//   - a JSON form used by the host wire protocol (blobs as base64)
//   - float32 array <-> BLOB encoding for typed-array payloads
package value
