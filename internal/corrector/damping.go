package corrector

import "github.com/adtzlr/pacopy/internal/branch"

// maxHalvings bounds the damping backtracks per Newton update.
const maxHalvings = 4

// damp applies (u, lambda) += scale*(du, dlam), halving scale while the
// residual norm would increase. After maxHalvings the smallest trial is
// taken as is; a failed update then surfaces through the iteration budget.
func damp(p branch.Problem, u branch.State, lam float64, du branch.State, dlam, norm float64) (branch.State, float64, branch.State, float64) {
	scale := 1.0
	for k := 0; ; k++ {
		uNew := u.AddScaled(scale, du)
		lamNew := lam + scale*dlam
		fNew := p.Residual(uNew, lamNew)
		nNew := p.Norm(fNew)
		if nNew < norm || k >= maxHalvings {
			return uNew, lamNew, fNew, nNew
		}
		scale *= 0.5
	}
}
