package check

import (
	"context"
	"time"

	"github.com/addspin/zerotrace/crypts"
	"github.com/addspin/zerotrace/models"
	"github.com/addspin/zerotrace/store"
	"github.com/addspin/zerotrace/utils"
)

// StartIntegritySweep periodically re-verifies every non-revoked
// certificate against its stored hash and signature, so silent
// corruption or tampering in the store surfaces to operators without
// waiting for an outside verification attempt. Runs once immediately,
// then on the ticker. Never mutates certificates.
func StartIntegritySweep(st store.Store, verifier *crypts.Verifier, interval time.Duration) {
	utils.L().Infow("integrity sweep started", "interval", interval.String())

	Sweep(context.Background(), st, verifier)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		Sweep(context.Background(), st, verifier)
	}
}

// Sweep runs a single pass and returns the number of failures found.
func Sweep(ctx context.Context, st store.Store, verifier *crypts.Verifier) int {
	certs, err := st.ListActiveCertificates(ctx)
	if err != nil {
		utils.L().Errorw("integrity sweep: listing certificates failed", "error", err)
		return 0
	}

	failed := 0
	for i := range certs {
		cert := &certs[i]
		canonical, err := crypts.Canonical(crypts.CanonicalFacts(cert))
		ok := err == nil &&
			crypts.Hash(canonical) == cert.VerificationHash &&
			verifier.Verify(canonical, cert.Signature)
		if ok {
			continue
		}
		failed++
		utils.L().Errorw("integrity sweep: certificate failed verification",
			"cert_id", cert.CertId, "error", models.ErrIntegrity)
		entry := &models.VerificationLogEntry{
			CertId:    cert.CertId,
			Result:    models.ResultIntegrityFailure,
			IpAddress: "system",
			UserAgent: "integrity-sweep",
		}
		if err := st.InsertVerificationLog(ctx, entry); err != nil {
			utils.L().Errorw("integrity sweep: log write failed",
				"cert_id", cert.CertId, "error", err)
		}
	}
	if failed > 0 {
		utils.L().Errorw("integrity sweep finished with failures",
			"checked", len(certs), "failed", failed)
	} else {
		utils.L().Debugw("integrity sweep finished", "checked", len(certs))
	}
	return failed
}
