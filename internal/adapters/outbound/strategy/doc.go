// Package strategy contains the ports.Strategy adapters that route vault
// capital into external lending markets.
//
//   - rebasing.go
//     Rebasing: drives a ports.RebasingMarket. The receipt balance tracks the
//     underlying 1:1 and grows in place, so Harvest has nothing to do.
//
//   - exchange_rate.go
//     ExchangeRate: drives a ports.ExchangeRateMarket. Holdings are fixed-unit
//     receipt tokens valued at the market's exchange rate; non-zero market
//     codes become ports.MarketError. Harvest accrues pending interest.
//
// Both adapters accept calls only from the vault they were built for and
// return funds straight to it. A Deposit that fails after the funds were
// pulled sends them back before returning.
package strategy
