package nutrition

import "fmt"

// VetReferral es informativo: nunca bloquea la generación, solo agrega mensajes.
type VetReferral struct {
	Triggered bool     `json:"triggered"`
	Reasons   []string `json:"reasons"`
}

// CheckVetReferral evalúa cada trigger de forma independiente.
func CheckVetReferral(t *ReferenceTables, p DogProfile) VetReferral {
	reasons := make([]string, 0)

	if p.BCS <= 2 {
		reasons = append(reasons, "BCS ≤ 2: severe underweight. Veterinary examination recommended before dietary changes.")
	}
	if p.BCS >= 8 {
		reasons = append(reasons, "BCS ≥ 8: clinically obese. Veterinary-supervised weight loss program recommended.")
	}
	if p.AgeMonths < 4 {
		reasons = append(reasons, "Puppy under 4 months: critical growth phase. Veterinary nutritional guidance strongly recommended.")
	}
	if p.ReproductiveStatus == ReproLactating {
		reasons = append(reasons, "Lactating: energy needs vary 3-6x RER based on litter size. Requires veterinary calculation.")
	}
	for _, c := range uniqueConditions(p.HealthConditions) {
		ov, ok := t.Override(c)
		if ok && ov.VetReferralRequired {
			reasons = append(reasons, fmt.Sprintf("Health condition %q: %s", c, ov.Notes))
		}
	}
	// Se compara el nombre de raza, no breed_size: son dominios distintos.
	if t.isCopperSensitive(p.Breed) {
		reasons = append(reasons, "Breed with copper storage susceptibility. Consider copper-restricted formulation with vet input.")
	}

	return VetReferral{Triggered: len(reasons) > 0, Reasons: reasons}
}
