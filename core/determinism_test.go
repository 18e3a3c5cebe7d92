package core

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"woofi/core/types"
	"woofi/crypto"
	"woofi/native/woofi"
	"woofi/storage"
)

func fixedActor(t *testing.T, seed byte) *actor {
	t.Helper()
	key, err := crypto.PrivateKeyFromBytes(bytes.Repeat([]byte{seed}, 32))
	require.NoError(t, err)
	return &actor{key: key, addr: key.PubKey().Address().Array()}
}

func replay(t *testing.T, allocs []GenesisAlloc, txs []*types.Transaction) ([]string, []string) {
	t.Helper()
	db := storage.NewMemDB()
	t.Cleanup(db.Close)
	node, err := NewNode(db, Config{ChainID: testChainID, Genesis: allocs})
	require.NoError(t, err)
	emitted := &recorder{}
	node.SetEmitter(emitted)

	roots := []string{node.StateRoot().Hex()}
	for _, tx := range txs {
		receipt, _ := node.ApplyTransaction(tx)
		roots = append(roots, receipt.StateRoot)
	}
	kinds := make([]string, 0, len(emitted.events))
	for _, evt := range emitted.events {
		kinds = append(kinds, evt.EventType())
	}
	return roots, kinds
}

func TestReplayIsDeterministic(t *testing.T) {
	admin := fixedActor(t, 0x11)
	donor := fixedActor(t, 0x22)
	treasury := crypto.ProgramAddress("determinism-treasury")
	allocs := []GenesisAlloc{
		{Address: donor.addr, Balance: big.NewInt(5_000)},
		{Address: admin.addr, Balance: big.NewInt(100)},
	}

	var txs []*types.Transaction
	next := func(a *actor, typ types.TxType, refs [][]byte, args interface{}) {
		txs = append(txs, a.ledgerTx(t, typ, refs, args))
		a.nonce++
	}
	next(admin, types.TxTypeInitializePlatform, woofi.InitializePlatformRefs(), woofi.InitializePlatformArgs{Treasury: treasury})
	for _, name := range []string{"Rex", "Bella"} {
		refs, err := woofi.AddDogRefs(name)
		require.NoError(t, err)
		next(admin, types.TxTypeAddDog, refs, woofi.AddDogArgs{Name: name, Story: "story", ImageURL: "url"})
	}
	rex, err := woofi.DogAddress("Rex")
	require.NoError(t, err)
	for ts := int64(1); ts <= 3; ts++ {
		refs, err := woofi.DonateRefs(donor.addr, rex, treasury, ts)
		require.NoError(t, err)
		next(donor, types.TxTypeDonate, refs, woofi.DonateArgs{Amount: uint64(ts * 100), Timestamp: ts})
	}
	// A rejected transaction in the middle must not perturb later roots.
	bad := donor.ledgerTx(t, types.TxTypeDonate, txs[len(txs)-1].Accounts, woofi.DonateArgs{Amount: 0, Timestamp: 3})
	txs = append(txs, bad)
	next(admin, types.TxTypeWithdrawFunds, woofi.WithdrawFundsRefs(treasury, admin.addr), woofi.WithdrawFundsArgs{Amount: 250})

	rootsA, eventsA := replay(t, allocs, txs)
	rootsB, eventsB := replay(t, []GenesisAlloc{allocs[1], allocs[0]}, txs)

	require.Equal(t, rootsA, rootsB)
	require.Equal(t, eventsA, eventsB)
	require.Equal(t, rootsA[len(rootsA)-3], rootsA[len(rootsA)-2], "rejected transaction changed the root")
	require.NotEqual(t, rootsA[0], rootsA[len(rootsA)-1])
	require.Equal(t, woofi.EventTypeFundsWithdrawn, eventsA[len(eventsA)-1])
}
