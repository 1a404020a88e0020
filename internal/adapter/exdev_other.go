//go:build !unix

package adapter

func isEXDEV(error) bool {
	return false
}
