package nutrition

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// growthAgeMonths: por debajo de esta edad se exige el peso adulto esperado.
const growthAgeMonths = 12

// validator.Validate cachea la metadata de structs y es seguro para uso concurrente.
var validate = validator.New()

// ValidateProfile valida el perfil en el borde (handler / CLI). El Resolver asume
// input ya validado y no vuelve a chequear.
func ValidateProfile(p DogProfile) error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidProfile, describe(err))
	}
	if p.AgeMonths < growthAgeMonths && p.ExpectedAdultWeightKg == nil {
		return fmt.Errorf("%w: expected_adult_weight_kg required for dogs under %d months", ErrInvalidProfile, growthAgeMonths)
	}
	return nil
}

func ValidateEnergy(e EnergyContext) error {
	if err := validate.Struct(e); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidEnergy, describe(err))
	}
	return nil
}

// ValidateInput combina ambos chequeos y la regla cruzada de crecimiento.
func ValidateInput(p DogProfile, e EnergyContext) error {
	if err := ValidateProfile(p); err != nil {
		return err
	}
	if err := ValidateEnergy(e); err != nil {
		return err
	}
	if e.LifeStage.IsPuppy() && p.ExpectedAdultWeightKg == nil {
		return fmt.Errorf("%w: expected_adult_weight_kg required for life stage %s", ErrInvalidProfile, e.LifeStage)
	}
	return nil
}

// ValidateRecipe solo rechaza recetas malformadas (pesos o nutrientes negativos,
// ingredientes sin nombre). Una receta vacía es válida y la marca el Validator.
func ValidateRecipe(r CandidateRecipe) error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRecipe, describe(err))
	}
	return nil
}

func describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
