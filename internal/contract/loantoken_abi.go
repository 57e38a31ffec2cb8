package contract

// loantoken is the lending pool an asset is supplied to and borrowed from.
//
// Read hooks used by the CLI:
//
//	tokenPrice()            → price of one pool share, in wei of the asset
//	supplyInterestRate()    → lender APR, 18 decimals
//	borrowInterestRate()    → borrower APR, 18 decimals
//	assetBalanceOf(address) → underlying balance of a lender
func init() {
	RegisterBuiltin(BuiltinKind{
		ID:          "loantoken",
		Name:        "Loan Token (lending pool)",
		Description: "Asset lending pool: mint/burn pool shares, borrow against collateral.",
		ABI:         mustParseABI(loanTokenABI),
	})
}

const loanTokenABI = `[
  {"type":"function","name":"name","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
  {"type":"function","name":"symbol","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
  {"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
  {"type":"function","name":"totalSupply","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"loanTokenAddress","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"tokenPrice","stateMutability":"view","inputs":[],"outputs":[{"name":"price","type":"uint256"}]},
  {"type":"function","name":"totalAssetSupply","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"totalAssetBorrow","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"marketLiquidity","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"supplyInterestRate","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"borrowInterestRate","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"nextBorrowInterestRate","stateMutability":"view","inputs":[{"name":"borrowAmount","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"assetBalanceOf","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"profitOf","stateMutability":"view","inputs":[{"name":"user","type":"address"}],"outputs":[{"name":"","type":"int256"}]},
  {"type":"function","name":"mint","stateMutability":"nonpayable","inputs":[{"name":"receiver","type":"address"},{"name":"depositAmount","type":"uint256"}],"outputs":[{"name":"mintAmount","type":"uint256"}]},
  {"type":"function","name":"mintWithBTC","stateMutability":"payable","inputs":[{"name":"receiver","type":"address"}],"outputs":[{"name":"mintAmount","type":"uint256"}]},
  {"type":"function","name":"burn","stateMutability":"nonpayable","inputs":[{"name":"receiver","type":"address"},{"name":"burnAmount","type":"uint256"}],"outputs":[{"name":"loanAmountPaid","type":"uint256"}]},
  {"type":"function","name":"burnToBTC","stateMutability":"nonpayable","inputs":[{"name":"receiver","type":"address"},{"name":"burnAmount","type":"uint256"}],"outputs":[{"name":"loanAmountPaid","type":"uint256"}]},
  {"type":"function","name":"borrow","stateMutability":"payable","inputs":[{"name":"loanId","type":"bytes32"},{"name":"withdrawAmount","type":"uint256"},{"name":"initialLoanDuration","type":"uint256"},{"name":"collateralTokenSent","type":"uint256"},{"name":"collateralTokenAddress","type":"address"},{"name":"borrower","type":"address"},{"name":"receiver","type":"address"},{"name":"loanDataBytes","type":"bytes"}],"outputs":[{"name":"","type":"uint256"},{"name":"","type":"uint256"}]},
  {"type":"event","name":"Mint","anonymous":false,"inputs":[{"name":"minter","type":"address","indexed":true},{"name":"tokenAmount","type":"uint256","indexed":false},{"name":"assetAmount","type":"uint256","indexed":false},{"name":"price","type":"uint256","indexed":false}]},
  {"type":"event","name":"Burn","anonymous":false,"inputs":[{"name":"burner","type":"address","indexed":true},{"name":"tokenAmount","type":"uint256","indexed":false},{"name":"assetAmount","type":"uint256","indexed":false},{"name":"price","type":"uint256","indexed":false}]}
]`
