// Package stack provides the resource model shared by every other package:
// resource identifiers, item and fluid stacks, the tag catalog, canonical
// encoding and the 64-bit material hash used by recipe caches.
//
// This package imports nothing internal. Key constraints:
//   - Resource identifiers are NFC normalized before comparison or hashing
//   - An empty stack is the zero value; a stack with count <= 0 is empty
//   - Material hashes cover resource identity only, never quantities
package stack
