// Package host runs the WASM build of the boundary inside wazero and speaks
// its ABI from the caller side: allocate a request buffer in the guest,
// call process, copy the response out, and hand both buffers back through
// deallocate.
//
// Guest log records arrive through the jsonffi_host.log_message import and
// are re-emitted on the executor's logger.
package host
