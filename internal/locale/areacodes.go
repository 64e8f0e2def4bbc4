// Package locale holds the Brazilian area-code (DDD) table used to validate
// and describe phone numbers.
package locale

import "sort"

// areaCodes maps a two digit DDD to "State (UF)".
var areaCodes = map[string]string{
	"68": "Acre (AC)",
	"82": "Alagoas (AL)",
	"92": "Amazonas (AM)",
	"97": "Amazonas (AM)",
	"71": "Bahia (BA)",
	"73": "Bahia (BA)",
	"74": "Bahia (BA)",
	"75": "Bahia (BA)",
	"77": "Bahia (BA)",
	"85": "Ceará (CE)",
	"88": "Ceará (CE)",
	"61": "Distrito Federal (DF)",
	"27": "Espírito Santo (ES)",
	"28": "Espírito Santo (ES)",
	"62": "Goiás (GO)",
	"64": "Goiás (GO)",
	"98": "Maranhão (MA)",
	"99": "Maranhão (MA)",
	"65": "Mato Grosso (MT)",
	"66": "Mato Grosso (MT)",
	"67": "Mato Grosso do Sul (MS)",
	"31": "Minas Gerais (MG)",
	"32": "Minas Gerais (MG)",
	"33": "Minas Gerais (MG)",
	"34": "Minas Gerais (MG)",
	"35": "Minas Gerais (MG)",
	"37": "Minas Gerais (MG)",
	"38": "Minas Gerais (MG)",
	"91": "Pará (PA)",
	"93": "Pará (PA)",
	"94": "Pará (PA)",
	"83": "Paraíba (PB)",
	"41": "Paraná (PR)",
	"42": "Paraná (PR)",
	"43": "Paraná (PR)",
	"44": "Paraná (PR)",
	"45": "Paraná (PR)",
	"46": "Paraná (PR)",
	"81": "Pernambuco (PE)",
	"87": "Pernambuco (PE)",
	"86": "Piauí (PI)",
	"89": "Piauí (PI)",
	"21": "Rio de Janeiro (RJ)",
	"22": "Rio de Janeiro (RJ)",
	"24": "Rio de Janeiro (RJ)",
	"84": "Rio Grande do Norte (RN)",
	"51": "Rio Grande do Sul (RS)",
	"53": "Rio Grande do Sul (RS)",
	"54": "Rio Grande do Sul (RS)",
	"55": "Rio Grande do Sul (RS)",
	"69": "Rondônia (RO)",
	"95": "Roraima (RR)",
	"47": "Santa Catarina (SC)",
	"48": "Santa Catarina (SC)",
	"49": "Santa Catarina (SC)",
	"11": "São Paulo (SP)",
	"12": "São Paulo (SP)",
	"13": "São Paulo (SP)",
	"14": "São Paulo (SP)",
	"15": "São Paulo (SP)",
	"16": "São Paulo (SP)",
	"17": "São Paulo (SP)",
	"18": "São Paulo (SP)",
	"19": "São Paulo (SP)",
	"79": "Sergipe (SE)",
	"63": "Tocantins (TO)",
}

// StateForAreaCode returns the state for a two digit area code.
func StateForAreaCode(code string) (string, bool) {
	state, ok := areaCodes[code]
	return state, ok
}

// IsKnownAreaCode reports whether code is a DDD in the table.
func IsKnownAreaCode(code string) bool {
	_, ok := areaCodes[code]
	return ok
}

// AreaCodes returns every known DDD in ascending order.
func AreaCodes() []string {
	codes := make([]string, 0, len(areaCodes))
	for code := range areaCodes {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
