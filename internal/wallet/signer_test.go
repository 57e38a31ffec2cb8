package wallet

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Well-known Hardhat/Anvil test account #0; never fund on mainnet.
const (
	testPrivKeyHex = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testSignerAddr = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

// testKeystore returns a file-backed Keystore isolated to a temp directory.
// Using the FileBackend avoids OS keychain prompts in CI.
func testKeystore(t *testing.T) *Keystore {
	t.Helper()
	ks, err := FileKeystore(t.TempDir(), func(string) (string, error) { return "testpass", nil })
	require.NoError(t, err)
	return ks
}

func signingWallet(t *testing.T) (*Wallet, KeystoreBackend) {
	t.Helper()
	ks := NewInMemoryKeystore()
	ref, err := ks.Store("testwal", testPrivKeyHex)
	require.NoError(t, err)
	return &Wallet{Name: "testwal", Address: testSignerAddr, Type: TypeSigning, KeyRef: ref}, ks
}

func legacyTx() *types.Transaction {
	to := common.HexToAddress("0x01")
	return types.NewTx(&types.LegacyTx{
		Nonce:    0,
		To:       &to,
		Value:    big.NewInt(1e18),
		Gas:      21000,
		GasPrice: big.NewInt(60_000_000),
	})
}

func TestSignerAddress(t *testing.T) {
	w := &Wallet{Name: "w", Address: testSignerAddr, Type: TypeSigning}
	s := NewSigner(w, NewInMemoryKeystore())
	assert.Equal(t, common.HexToAddress(testSignerAddr), s.Address())
}

func TestSignTxWatchOnlyError(t *testing.T) {
	w := &Wallet{Name: "watcher", Address: testSignerAddr, Type: TypeWatchOnly}
	_, err := NewSigner(w, NewInMemoryKeystore()).SignTx(legacyTx(), big.NewInt(31))
	assert.ErrorContains(t, err, "watch-only")
}

func TestSignTxKeystoreNotAvailable(t *testing.T) {
	t.Setenv(KeyEnvVar, "")
	w := &Wallet{Name: "w", Address: testSignerAddr, Type: TypeSigning, KeyRef: "w3link.w"}
	_, err := NewSigner(w, &Keystore{ring: nil}).SignTx(legacyTx(), big.NewInt(31))
	assert.ErrorIs(t, err, ErrKeystoreUnavailable)
	assert.ErrorContains(t, err, "retrieving key")
}

func TestSignTxKeyNotFound(t *testing.T) {
	t.Setenv(KeyEnvVar, "")
	w := &Wallet{Name: "missing", Address: testSignerAddr, Type: TypeSigning, KeyRef: "w3link.doesnotexist"}
	_, err := NewSigner(w, testKeystore(t)).SignTx(legacyTx(), big.NewInt(31))
	assert.ErrorContains(t, err, "retrieving key")
}

func TestSignTxKeyAddressMismatch(t *testing.T) {
	w, ks := signingWallet(t)
	w.Address = "0x0000000000000000000000000000000000000001"
	_, err := NewSigner(w, ks).SignTx(legacyTx(), big.NewInt(31))
	assert.ErrorContains(t, err, "belongs to")
}

func TestSignTxRecoversSender(t *testing.T) {
	w, ks := signingWallet(t)
	chainID := big.NewInt(31)

	signed, err := NewSigner(w, ks).SignTx(legacyTx(), chainID)
	require.NoError(t, err)

	assert.Equal(t, uint8(types.LegacyTxType), signed.Type())
	assert.Equal(t, chainID, signed.ChainId())

	sender, err := types.Sender(types.NewLondonSigner(chainID), signed)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testSignerAddr), sender)
}

func TestSignTxDifferentChainIDs(t *testing.T) {
	w, ks := signingWallet(t)
	s := NewSigner(w, ks)

	onTestnet, err := s.SignTx(legacyTx(), big.NewInt(31))
	require.NoError(t, err)
	onMainnet, err := s.SignTx(legacyTx(), big.NewInt(30))
	require.NoError(t, err)

	assert.NotEqual(t, onTestnet.Hash(), onMainnet.Hash(), "same tx signed on different chains must differ")
}

func TestSignAndVerifyMessage(t *testing.T) {
	w, ks := signingWallet(t)
	msg := []byte("connect to w3link")

	sig, err := NewSigner(w, ks).SignMessage(msg)
	require.NoError(t, err)
	require.Len(t, sig, 65)
	assert.Contains(t, []byte{27, 28}, sig[64])

	addr, err := VerifyMessage(msg, sig)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testSignerAddr), addr)

	other, err := VerifyMessage([]byte("something else"), sig)
	require.NoError(t, err)
	assert.NotEqual(t, common.HexToAddress(testSignerAddr), other)
}

func TestVerifyMessageMalformed(t *testing.T) {
	_, err := VerifyMessage([]byte("x"), make([]byte, 10))
	assert.ErrorIs(t, err, ErrBadSignature)

	sig := make([]byte, 65)
	sig[64] = 5
	_, err = VerifyMessage([]byte("x"), sig)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifyMessageAcceptsRawRecoveryID(t *testing.T) {
	w, ks := signingWallet(t)
	msg := []byte("connect to w3link")
	sig, err := NewSigner(w, ks).SignMessage(msg)
	require.NoError(t, err)

	sig[64] -= 27
	addr, err := VerifyMessage(msg, sig)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testSignerAddr), addr)
}
