// Package main is the entry point for Paygate.
//
//	@title						Paygate - Pay-per-request API Gateway
//	@version					1.0
//	@description				Micropayment gateway that admits API calls carrying an x402-style X-Payment claim, with per-client rate limiting and a request ledger.
//	@termsOfService				https://github.com/artpar/paygate
//
//	@contact.name				Paygate Support
//	@contact.url				https://github.com/artpar/paygate/issues
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@securityDefinitions.apikey	PaymentClaim
//	@in							header
//	@name						X-Payment
//	@description				Payment claim (format: "max_amount=0.01, token=USDC")
//
//	@securityDefinitions.apikey	AdminToken
//	@in							header
//	@name						X-Admin-Token
//	@description				Admin token checked against admin.token_hash
package main

func main() {
	Execute()
}
