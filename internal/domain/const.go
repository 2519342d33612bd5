package domain

type ctxKey string

// SourceAddrCtxKey carries the server-observed client address through the
// request context; the ledger records it as capture provenance.
const SourceAddrCtxKey ctxKey = "bg-sourceAddr"
