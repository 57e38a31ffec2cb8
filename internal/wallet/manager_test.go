package wallet_test

import (
	"strings"
	"testing"

	"github.com/Mohsinsiddi/w3link/internal/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Well-known Hardhat/Anvil test account #0; never fund on mainnet.
const (
	knownKey  = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	knownAddr = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

func TestAddWatchOnlyWallet(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())

	err := mgr.Add("mywallet", &wallet.Wallet{
		Address: "0x1234567890abcdef1234567890abcdef12345678",
	})
	require.NoError(t, err)

	w, err := mgr.Get("mywallet")
	require.NoError(t, err)
	assert.Equal(t, "mywallet", w.Name)
	assert.Equal(t, wallet.TypeWatchOnly, w.Type)
	assert.False(t, w.CanSign())
}

func TestAddRejectsBadAddress(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	err := mgr.Add("bad", &wallet.Wallet{Address: "0x123..."})
	assert.ErrorIs(t, err, wallet.ErrInvalidAddress)
}

func TestAddDuplicateWalletErrors(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())

	require.NoError(t, mgr.Add("dup", &wallet.Wallet{Address: knownAddr}))
	err := mgr.Add("dup", &wallet.Wallet{Address: knownAddr})
	assert.ErrorIs(t, err, wallet.ErrWalletExists)
}

func TestAddSigningWallet(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())

	require.NoError(t, mgr.AddWithKey("signer", knownKey))

	w, err := mgr.Get("signer")
	require.NoError(t, err)
	assert.Equal(t, wallet.TypeSigning, w.Type)
	assert.Equal(t, knownAddr, w.Address)
	assert.Equal(t, "w3link.signer", w.KeyRef)
}

func TestInvalidPrivateKey(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	err := mgr.AddWithKey("bad", "not-a-valid-key")
	assert.ErrorIs(t, err, wallet.ErrInvalidKey)
}

func TestListWalletsSorted(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	for _, name := range []string{"w3", "w1", "w2"} {
		require.NoError(t, mgr.Add(name, &wallet.Wallet{Address: knownAddr}))
	}

	wallets := mgr.List()
	require.Len(t, wallets, 3)
	assert.Equal(t, "w1", wallets[0].Name)
	assert.Equal(t, "w3", wallets[2].Name)
}

func TestRemoveWalletDeletesKey(t *testing.T) {
	ks := wallet.NewInMemoryKeystore()
	mgr := wallet.NewManager(wallet.WithKeystore(ks), wallet.WithInMemoryStore())
	require.NoError(t, mgr.AddWithKey("w1", knownKey))

	require.NoError(t, mgr.Remove("w1"))

	_, err := mgr.Get("w1")
	assert.ErrorIs(t, err, wallet.ErrWalletNotFound)
	_, err = ks.Retrieve("w3link.w1")
	assert.Error(t, err)
}

func TestRemoveNonExistentWallet(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	err := mgr.Remove("ghost")
	assert.ErrorIs(t, err, wallet.ErrWalletNotFound)
}

func TestSetDefault(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	require.NoError(t, mgr.Add("w1", &wallet.Wallet{Address: knownAddr}))
	require.NoError(t, mgr.Add("w2", &wallet.Wallet{Address: knownAddr}))

	require.NoError(t, mgr.SetDefault("w2"))

	def := mgr.Default()
	require.NotNil(t, def)
	assert.Equal(t, "w2", def.Name)

	assert.ErrorIs(t, mgr.SetDefault("ghost"), wallet.ErrWalletNotFound)
}

func TestDefaultWalletWithSingleWallet(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	require.NoError(t, mgr.Add("only", &wallet.Wallet{Address: knownAddr}))

	def := mgr.Default()
	require.NotNil(t, def)
	assert.Equal(t, "only", def.Name)
}

func TestDefaultNilWhenAmbiguous(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	require.NoError(t, mgr.Add("a", &wallet.Wallet{Address: knownAddr}))
	require.NoError(t, mgr.Add("b", &wallet.Wallet{Address: knownAddr}))
	assert.Nil(t, mgr.Default())
}

func TestGenerateWallet(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())

	w, hexKey, err := mgr.Generate("fresh")
	require.NoError(t, err)

	assert.Equal(t, "fresh", w.Name)
	assert.Equal(t, wallet.TypeSigning, w.Type)
	assert.True(t, strings.HasPrefix(w.Address, "0x"))
	assert.Len(t, w.Address, 42)
	assert.True(t, strings.HasPrefix(hexKey, "0x"))
	assert.Len(t, hexKey, 66)

	_, _, err = mgr.Generate("fresh")
	assert.ErrorIs(t, err, wallet.ErrWalletExists)
}

func TestGenerateUniqueKeys(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	_, key1, err := mgr.Generate("g1")
	require.NoError(t, err)
	_, key2, err := mgr.Generate("g2")
	require.NoError(t, err)
	assert.NotEqual(t, key1, key2)
}

func TestManagerSigner(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())

	_, err := mgr.Signer("")
	assert.ErrorIs(t, err, wallet.ErrWalletNotFound)

	require.NoError(t, mgr.AddWithKey("main", knownKey))

	s, err := mgr.Signer("")
	require.NoError(t, err)
	assert.Equal(t, knownAddr, s.Address().Hex())

	s, err = mgr.Signer("main")
	require.NoError(t, err)
	assert.Equal(t, "main", s.Wallet().Name)

	_, err = mgr.Signer("ghost")
	assert.ErrorIs(t, err, wallet.ErrWalletNotFound)
}
