package amm

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

var seed = struct {
	Pool     []byte
	Position []byte
	Launch   []byte
	Vault    []byte
}{
	Pool:     []byte("pool"),
	Position: []byte("position"),
	Launch:   []byte("launch"),
	Vault:    []byte("vault"),
}

// DerivePoolAddress derives the pool id from its ordered key.
func DerivePoolAddress(key PoolKey) solana.PublicKey {
	var fee [8]byte
	binary.LittleEndian.PutUint64(fee[:], key.FeeBps)
	pub, _, _ := solana.FindProgramAddress([][]byte{
		seed.Pool,
		key.TokenX.Bytes(),
		key.TokenY.Bytes(),
		fee[:],
	}, ProgramID)
	return pub
}

// DerivePositionAddress derives a position id. The nonce distinguishes
// positions sharing a (pool, owner) pair; callers supply a monotonic counter.
func DerivePositionAddress(pool, owner solana.PublicKey, nonce uint64) solana.PublicKey {
	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], nonce)
	pub, _, _ := solana.FindProgramAddress([][]byte{
		seed.Position,
		pool.Bytes(),
		owner.Bytes(),
		n[:],
	}, ProgramID)
	return pub
}

// DeriveLaunchAddress derives a launch id from its creator, token mint and a
// per-creator nonce.
func DeriveLaunchAddress(creator, mint solana.PublicKey, nonce uint64) solana.PublicKey {
	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], nonce)
	pub, _, _ := solana.FindProgramAddress([][]byte{
		seed.Launch,
		creator.Bytes(),
		mint.Bytes(),
		n[:],
	}, ProgramID)
	return pub
}

// DeriveVaultAddress derives the ledger vault id for a currency.
func DeriveVaultAddress(currency Currency) solana.PublicKey {
	pub, _, _ := solana.FindProgramAddress([][]byte{
		seed.Vault,
		currency.Bytes(),
	}, ProgramID)
	return pub
}
