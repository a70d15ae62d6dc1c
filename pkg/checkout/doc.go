// Package checkout provides the checkout provider the deployer uses to turn a
// revision specifier into a canonical revision id and to materialize that
// revision as a release directory.
//
// The deployer only depends on types.CheckoutProvider; Git is the shipped
// implementation. Identifiers it returns are full commit ids so two specifiers
// naming the same commit always map to the same release.
package checkout
