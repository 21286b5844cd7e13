package amm

import (
	"bytes"
	"fmt"
	"math/big"
	"sort"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/krazyTry/launchpad-go/u128"
)

// Borsh records for persisting the manager's ledger between runs.
type poolRecord struct {
	Address   solana.PublicKey
	Key       PoolKey
	SqrtPrice bin.Uint128
	Liquidity bin.Uint128
	ReserveX  bin.Uint128
	ReserveY  bin.Uint128
}

type positionRecord struct {
	Address   solana.PublicKey
	Pool      solana.PublicKey
	Owner     solana.PublicKey
	Nonce     uint64
	Liquidity bin.Uint128
}

type balanceRecord struct {
	Owner    solana.PublicKey
	Currency Currency
	Amount   bin.Uint128
}

type managerState struct {
	Pools     []poolRecord
	Positions []positionRecord
	Balances  []balanceRecord
}

// Snapshot serializes the full ledger, ordered by address so equal states
// produce equal bytes. Rejected while a lock session is running.
func (m *PoolManager) Snapshot() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locked {
		return nil, ErrLocked
	}

	state := managerState{}
	for id, p := range m.pools {
		reserveX, err := u128.FromBig(p.ReserveX)
		if err != nil {
			return nil, fmt.Errorf("%w: reserve x of %s", ErrOverflow, id)
		}
		reserveY, err := u128.FromBig(p.ReserveY)
		if err != nil {
			return nil, fmt.Errorf("%w: reserve y of %s", ErrOverflow, id)
		}
		state.Pools = append(state.Pools, poolRecord{
			Address:   id,
			Key:       p.Key,
			SqrtPrice: p.SqrtPrice,
			Liquidity: p.Liquidity,
			ReserveX:  reserveX,
			ReserveY:  reserveY,
		})
	}
	for _, p := range m.positions {
		state.Positions = append(state.Positions, positionRecord{
			Address:   p.Address,
			Pool:      p.Pool,
			Owner:     p.Owner,
			Nonce:     p.Nonce,
			Liquidity: p.Liquidity,
		})
	}
	for owner, byCurrency := range m.balances {
		for currency, bal := range byCurrency {
			amount, err := u128.FromBig(bal)
			if err != nil {
				return nil, fmt.Errorf("%w: balance of %s", ErrOverflow, owner)
			}
			state.Balances = append(state.Balances, balanceRecord{
				Owner:    owner,
				Currency: currency,
				Amount:   amount,
			})
		}
	}
	sort.Slice(state.Pools, func(i, j int) bool {
		return bytes.Compare(state.Pools[i].Address[:], state.Pools[j].Address[:]) < 0
	})
	sort.Slice(state.Positions, func(i, j int) bool {
		return bytes.Compare(state.Positions[i].Address[:], state.Positions[j].Address[:]) < 0
	})
	sort.Slice(state.Balances, func(i, j int) bool {
		a, b := state.Balances[i], state.Balances[j]
		if c := bytes.Compare(a.Owner[:], b.Owner[:]); c != 0 {
			return c < 0
		}
		return bytes.Compare(a.Currency[:], b.Currency[:]) < 0
	})

	buf := new(bytes.Buffer)
	if err := bin.NewBorshEncoder(buf).Encode(state); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Restore replaces the ledger with a previously serialized snapshot.
func (m *PoolManager) Restore(data []byte) error {
	var state managerState
	if err := bin.NewBorshDecoder(data).Decode(&state); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locked {
		return ErrLocked
	}

	m.pools = make(map[solana.PublicKey]*Pool, len(state.Pools))
	for _, r := range state.Pools {
		m.pools[r.Address] = &Pool{
			Key:       r.Key,
			SqrtPrice: r.SqrtPrice,
			Liquidity: r.Liquidity,
			ReserveX:  u128.ToBig(r.ReserveX),
			ReserveY:  u128.ToBig(r.ReserveY),
		}
	}
	m.positions = make(map[solana.PublicKey]*Position, len(state.Positions))
	for _, r := range state.Positions {
		m.positions[r.Address] = &Position{
			Address:   r.Address,
			Pool:      r.Pool,
			Owner:     r.Owner,
			Nonce:     r.Nonce,
			Liquidity: r.Liquidity,
		}
	}
	m.balances = make(map[solana.PublicKey]map[Currency]*big.Int, len(state.Balances))
	for _, r := range state.Balances {
		byCurrency, ok := m.balances[r.Owner]
		if !ok {
			byCurrency = make(map[Currency]*big.Int)
			m.balances[r.Owner] = byCurrency
		}
		byCurrency[r.Currency] = u128.ToBig(r.Amount)
	}
	return nil
}
