// Package billing provides the domain models for what apartments owe and
// what they have paid.
//
// Key Aggregates:
//   - Obligation: A dated amount an apartment owes: monthly dues, an
//     extra collection share, or an accrued late fee. Status is always
//     recomputed from the non-reversed payments applied to it.
//   - Payment: Money received from an apartment, optionally applied to an
//     obligation and routed to a bank account. Payments are never deleted,
//     only reversed.
//   - Receipt: The numbered proof issued for a payment, sequenced per site.
//
// The billing domain integrates with:
//   - Site domain: Apartments and the site's dues policy drive accrual.
//   - Banking domain: Payments routed to an account appear in its ledger.
package billing
