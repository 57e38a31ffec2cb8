package provider_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Mohsinsiddi/w3link/internal/provider"
	"github.com/Mohsinsiddi/w3link/internal/testutil/fakenode"
	"github.com/Mohsinsiddi/w3link/internal/wallet"
)

// Hardhat/Anvil account #0 and #1; never fund on mainnet.
const (
	aliceKey  = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	aliceAddr = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	bobKey    = "59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"
	bobAddr   = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
)

func testSigner(t *testing.T, name, key, addr string) *wallet.Signer {
	t.Helper()
	ks := wallet.NewInMemoryKeystore()
	ref, err := ks.Store(name, key)
	require.NoError(t, err)
	w := &wallet.Wallet{Name: name, Address: addr, Type: wallet.TypeSigning, KeyRef: ref}
	return wallet.NewSigner(w, ks)
}

type injectedFixture struct {
	p       *provider.Injected
	testnet *fakenode.Node
	mainnet *fakenode.Node
}

func newInjected(t *testing.T) injectedFixture {
	t.Helper()
	sb := fakenode.NewSwitchboard()
	f := injectedFixture{testnet: fakenode.New(31), mainnet: fakenode.New(30)}
	sb.Add("http://testnet", f.testnet)
	sb.Add("http://mainnet", f.mainnet)

	p, err := provider.NewInjected(context.Background(), provider.InjectedConfig{
		Signer:    testSigner(t, "alice", aliceKey, aliceAddr),
		ChainID:   31,
		Endpoints: map[int64]string{31: "http://testnet", 30: "http://mainnet"},
		Dial:      sb.Dial,
		Logger:    zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	f.p = p
	t.Cleanup(func() { _ = p.Close() })
	return f
}

func nextEvent(t *testing.T, ch <-chan provider.Event) provider.Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "event channel closed")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for provider event")
	}
	return provider.Event{}
}

func TestInjectedAccountsAndChain(t *testing.T) {
	f := newInjected(t)
	ctx := context.Background()

	var accounts []common.Address
	require.NoError(t, f.p.CallContext(ctx, &accounts, "eth_requestAccounts"))
	assert.Equal(t, []common.Address{common.HexToAddress(aliceAddr)}, accounts)

	var id hexutil.Big
	require.NoError(t, f.p.CallContext(ctx, &id, "eth_chainId"))
	assert.Equal(t, int64(31), id.ToInt().Int64())

	native, err := f.p.ChainID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(31), native)

	// net_version is answered by the chain node.
	var netID string
	require.NoError(t, f.p.CallContext(ctx, &netID, "net_version"))
	assert.Equal(t, "31", netID)
}

func TestInjectedNoEndpoint(t *testing.T) {
	_, err := provider.NewInjected(context.Background(), provider.InjectedConfig{
		Signer:  testSigner(t, "alice", aliceKey, aliceAddr),
		ChainID: 31,
	})
	assert.ErrorContains(t, err, "no RPC endpoint for chain 31")
}

func TestInjectedSendTransactionSignsLegacyTx(t *testing.T) {
	f := newInjected(t)
	to := common.HexToAddress("0x08118a219a4e34E06176cD0861fcDDB865771111")

	var hash common.Hash
	err := f.p.CallContext(context.Background(), &hash, "eth_sendTransaction", provider.TransactionArgs{
		To:    &to,
		Value: (*hexutil.Big)(big.NewInt(1000)),
		Data:  hexutil.Bytes{0xde, 0xad, 0xbe, 0xef},
	})
	require.NoError(t, err)

	raw := f.testnet.RawTransactions()
	require.Len(t, raw, 1)
	tx := raw[0]
	assert.Equal(t, hash, tx.Hash())
	assert.Equal(t, uint8(types.LegacyTxType), tx.Type())
	assert.Equal(t, uint64(0), tx.Nonce())
	assert.Equal(t, uint64(55_000), tx.Gas(), "node estimate plus 10%")
	assert.Equal(t, big.NewInt(60_000_000), tx.GasPrice())
	assert.Equal(t, big.NewInt(1000), tx.Value())
	assert.Equal(t, &to, tx.To())

	sender, err := types.Sender(types.NewLondonSigner(big.NewInt(31)), tx)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(aliceAddr), sender)
}

func TestInjectedSendTransactionIncrementsNonce(t *testing.T) {
	f := newInjected(t)
	to := common.HexToAddress("0x01")
	for i := 0; i < 2; i++ {
		var hash common.Hash
		require.NoError(t, f.p.CallContext(context.Background(), &hash, "eth_sendTransaction",
			map[string]interface{}{"to": to.Hex()}))
	}
	raw := f.testnet.RawTransactions()
	require.Len(t, raw, 2)
	assert.Equal(t, uint64(1), raw[1].Nonce())
}

func TestInjectedSendTransactionRejectsForeignFrom(t *testing.T) {
	f := newInjected(t)
	from := common.HexToAddress(bobAddr)
	err := f.p.CallContext(context.Background(), nil, "eth_sendTransaction", provider.TransactionArgs{From: &from})
	assert.ErrorContains(t, err, "is not the connected account")
	assert.Empty(t, f.testnet.RawTransactions())
}

func TestInjectedPersonalSign(t *testing.T) {
	f := newInjected(t)
	msg := []byte("sign in to w3link")

	var sig hexutil.Bytes
	require.NoError(t, f.p.CallContext(context.Background(), &sig, "personal_sign", hexutil.Bytes(msg), aliceAddr))

	addr, err := wallet.VerifyMessage(msg, sig)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(aliceAddr), addr)
}

func TestInjectedSwitchChainEmitsEvent(t *testing.T) {
	f := newInjected(t)
	ctx := context.Background()

	require.NoError(t, f.p.SwitchChain(ctx, 30))
	ev := nextEvent(t, f.p.Events())
	assert.Equal(t, provider.ChainChanged, ev.Type)
	assert.Equal(t, int64(30), ev.ChainID)

	var netID string
	require.NoError(t, f.p.CallContext(ctx, &netID, "net_version"))
	assert.Equal(t, "30", netID, "requests go to the new chain's node")

	assert.Error(t, f.p.SwitchChain(ctx, 9999))
	native, _ := f.p.ChainID(ctx)
	assert.Equal(t, int64(30), native, "failed switch keeps the chain")
}

func TestInjectedSwitchChainViaRequest(t *testing.T) {
	f := newInjected(t)
	err := f.p.CallContext(context.Background(), nil, "wallet_switchEthereumChain",
		map[string]string{"chainId": "0x1e"})
	require.NoError(t, err)
	assert.Equal(t, int64(30), nextEvent(t, f.p.Events()).ChainID)
}

func TestInjectedSwitchAccountAndLock(t *testing.T) {
	f := newInjected(t)
	ctx := context.Background()

	f.p.SwitchAccount(testSigner(t, "bob", bobKey, bobAddr))
	ev := nextEvent(t, f.p.Events())
	assert.Equal(t, provider.AccountsChanged, ev.Type)
	assert.Equal(t, []common.Address{common.HexToAddress(bobAddr)}, ev.Accounts)

	f.p.Lock()
	ev = nextEvent(t, f.p.Events())
	assert.Equal(t, provider.AccountsChanged, ev.Type)
	assert.Empty(t, ev.Accounts)

	var accounts []common.Address
	require.NoError(t, f.p.CallContext(ctx, &accounts, "eth_accounts"))
	assert.Empty(t, accounts)
	assert.ErrorContains(t, f.p.CallContext(ctx, nil, "eth_sendTransaction", provider.TransactionArgs{}), "locked")
}

func TestInjectedClose(t *testing.T) {
	f := newInjected(t)
	require.NoError(t, f.p.Close())
	require.NoError(t, f.p.Close())

	_, open := <-f.p.Events()
	assert.False(t, open)
	assert.ErrorIs(t, f.p.CallContext(context.Background(), nil, "eth_chainId"), provider.ErrClosed)
}
