package payment

import (
	"fmt"
	"strings"
)

var instructionMap = map[Method][]string{
	MethodBank: {
		"Transfer {{amount}} to account {{account}}",
		"Use {{reference}} as the payment reference",
		"Transfers are usually credited within one business day",
		"Your order ships once the transfer is credited",
	},

	MethodCOD: {
		"Your order will be shipped to the delivery address",
		"Prepare {{amount}} in cash for the courier",
		"Pay the courier on delivery",
		"Keep the receipt from the courier",
	},
}

func GetInstructions(method Method) []string {
	if steps, ok := instructionMap[method]; ok {
		return steps
	}

	return []string{
		"Follow the payment instructions shown on this page",
	}
}

type InstructionVars map[string]string

func InjectVariables(steps []string, vars InstructionVars) []string {
	result := make([]string, 0, len(steps))

	for _, step := range steps {
		updated := step
		for key, value := range vars {
			updated = strings.ReplaceAll(updated, "{{"+key+"}}", value)
		}
		result = append(result, updated)
	}

	return result
}

// FormatAmount renders a whole-unit amount for instruction text.
func FormatAmount(amount int64, currency string) string {
	return fmt.Sprintf("%d %s", amount, currency)
}
