package llm

import "fmt"

// Prompts are kept in the operators' language: the same people read the
// model's replies and the exported documents.

func BuildCurrencyPrompt(doc string) string {
	return fmt.Sprintf(`Проанализируй следующий документ и определи валюту товаров.
Ответь только одним словом - код валюты (например: USD, CNY, EUR, RUB).
Если валюта не найдена, ответь USD.

Документ:
%s`, doc)
}

func BuildSenderPrompt(doc string) string {
	return fmt.Sprintf(`Проанализируй следующий документ и определи Shipper и Exporter, нужно определить отправителя.
Ответь только названием компании, адрес и номер телефона не нужны (например: MTL TECHNOLOGY CO., LTD.).
Если отправитель не найден, ответь Не опознан.

Документ:
%s`, doc)
}

func BuildRecipientPrompt(doc string) string {
	return fmt.Sprintf(`Проанализируй следующий документ и определи For Account & Risk of Messrs, нужно определить получателя.
Ответь только названием компании, адрес и номер телефона не нужны (например: MTL TECHNOLOGY CO., LTD.).
Если получатель не найден, ответь Не опознан.

Документ:
%s`, doc)
}

// BuildSortPrompt embeds both container collections as JSON and asks for a
// reordering that keeps every record's content byte-for-byte intact.
func BuildSortPrompt(payload string) string {
	return fmt.Sprintf(`Ты должен отсортировать два массива данных так, чтобы соответствующие записи из invoice_containers и xml_containers были на одинаковых позициях.

ВАЖНО:
- НЕ МЕНЯЙ содержимое записей - все данные должны остаться точно такими же
- ТОЛЬКО меняй порядок строк в массивах
- Сопоставляй записи по схожести данных (номера контейнеров, описания товаров, коды ТН ВЭД, веса, суммы)
- Результат должен быть в формате JSON с двумя словарями: "sorted_invoice_containers" и "sorted_xml_containers", ключи - номера контейнеров, значения - массивы записей

Данные для анализа:
%s

ВАЖНО: Ответь ТОЛЬКО в формате JSON без дополнительных комментариев или объяснений.`, payload)
}
