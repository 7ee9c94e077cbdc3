// Package hash holds the checksum used across the container format.
// Descriptor and index sections, and S3 multipart parts, are all
// validated with CRC32-Castagnoli, which is hardware accelerated on
// current x86 and ARM.
package hash

import "hash/crc32"

var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// CRC32C computes the CRC32-Castagnoli checksum of data.
func CRC32C(data []byte) uint32 {
	return crc32.Checksum(data, crc32cTable)
}
