// Package slot defines the storage primitive the record store is built on: host
// objects that carry a flat namespace of small, independent, size limited slots.
//
// The package focuses on:
//   - A minimal Host interface (Get, Set, Delete per slot) every backend implements
//   - A closed slot Value type (string or number) mirroring what hosts can hold
//   - A Provider interface handing out host objects by id
//   - The naming scheme of record slots (LengthName, FragmentName)
//
// Implementations:
//
//   - memhost: in-memory hosts with optional byte and slot limits and compressed
//     snapshot files. Available in "github.com/ValentinKolb/dynDB/lib/slot/memhost".
//
//   - bolthost: durable hosts stored in a bbolt file, one bucket per host object.
//     Available in "github.com/ValentinKolb/dynDB/lib/slot/bolthost".
//
//   - rpc client: hosts living in a remote dyndb server.
//     Available in "github.com/ValentinKolb/dynDB/rpc/client".
//
// Thread Safety:
//
//	Hosts serialize their own slot writes but offer no multi-slot transactions.
//	Callers writing several slots that belong together (like a record store save)
//	must not run concurrently against the same slots.
package slot
