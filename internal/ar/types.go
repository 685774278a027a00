package ar

// Availability é o resultado efêmero da checagem de disponibilidade do
// app companheiro. Nunca persistido; recomputado sob demanda consultando
// o registro de pacotes da plataforma.
type Availability struct {
	Installed bool `json:"installed"`
	Checking  bool `json:"checking"`
}

// Platform é o colaborador de checagem/lançamento da plataforma.
// Em sistemas sem conceito de pacotes companheiros o handle é nil e
// todas as operações do bridge falham com CodeBridgeUnavailable.
type Platform interface {
	// IsInstalled consulta o registro de pacotes da plataforma.
	IsInstalled(packageName string) (bool, error)

	// Launch inicia o componente dentro do pacote instalado.
	// Erros retornados como *BridgeError preservam o código; qualquer
	// outro erro é envolvido pelo bridge como CodeLaunch.
	Launch(packageName, activityName string) error
}
