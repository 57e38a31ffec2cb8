package contract

func init() {
	RegisterBuiltin(BuiltinKind{
		ID:          "protocol",
		Name:        "Protocol",
		Description: "Core protocol: loan bookkeeping and lender interest.",
		ABI:         mustParseABI(protocolABI),
	})
	RegisterBuiltin(BuiltinKind{
		ID:          "pricefeeds",
		Name:        "Price Feeds",
		Description: "On-chain rate oracle between listed tokens.",
		ABI:         mustParseABI(priceFeedsABI),
	})
}

const protocolABI = `[
  {"type":"function","name":"getLenderInterestData","stateMutability":"view","inputs":[{"name":"lender","type":"address"},{"name":"loanToken","type":"address"}],"outputs":[{"name":"interestPaid","type":"uint256"},{"name":"interestPaidDate","type":"uint256"},{"name":"interestOwedPerDay","type":"uint256"},{"name":"interestUnPaid","type":"uint256"},{"name":"interestFeePercent","type":"uint256"},{"name":"principalTotal","type":"uint256"}]},
  {"type":"function","name":"getUserLoansCount","stateMutability":"view","inputs":[{"name":"user","type":"address"},{"name":"isLender","type":"bool"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"withdrawAccruedInterest","stateMutability":"nonpayable","inputs":[{"name":"loanToken","type":"address"}],"outputs":[]},
  {"type":"function","name":"closeWithDeposit","stateMutability":"payable","inputs":[{"name":"loanId","type":"bytes32"},{"name":"receiver","type":"address"},{"name":"depositAmount","type":"uint256"}],"outputs":[{"name":"loanCloseAmount","type":"uint256"},{"name":"withdrawAmount","type":"uint256"},{"name":"withdrawToken","type":"address"}]}
]`

const priceFeedsABI = `[
  {"type":"function","name":"queryRate","stateMutability":"view","inputs":[{"name":"sourceToken","type":"address"},{"name":"destToken","type":"address"}],"outputs":[{"name":"rate","type":"uint256"},{"name":"precision","type":"uint256"}]},
  {"type":"function","name":"queryReturn","stateMutability":"view","inputs":[{"name":"sourceToken","type":"address"},{"name":"destToken","type":"address"},{"name":"sourceAmount","type":"uint256"}],"outputs":[{"name":"destAmount","type":"uint256"}]}
]`
