package models

// WsolMint - mint адрес wrapped SOL (квотируемый актив всех сделок)
const WsolMint = "So11111111111111111111111111111111111111112"

// Quote - котировка свопа от исполнителя (Jupiter или симулятор)
type Quote struct {
	InputMint  string   `json:"input_mint"`
	OutputMint string   `json:"output_mint"`
	InAmount   float64  `json:"in_amount"`  // в единицах входного актива
	OutAmount  float64  `json:"out_amount"` // в единицах выходного актива
	Venues     []string `json:"venues"`     // площадки маршрута по порядку хопов
}

// TxResult - результат исполнения свопа
type TxResult struct {
	Signature string  `json:"signature"`  // подпись транзакции (пусто в SIMU)
	OutAmount float64 `json:"out_amount"` // фактически полученное количество
}
