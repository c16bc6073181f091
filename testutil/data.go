package testutil

// RegistryCSV is a comma-delimited export with Russian headers, an empty row and a
// row without links.
const RegistryCSV = `Объект,Отрасль,Район,Адрес,Ответственный,Статус,Работы,Ссылка на карточку,Ссылка на папку
Мост через р. Сейм,Дороги,Курский,"ул. Ленина, 1",Иванов И.И.,В работе,Капремонт,https://cards.example/1,https://drive.example/1
Школа №5,Образование,Железногорский,ул. Мира 2,Петров П.П.,Завершено,Строительство,https://cards.example/2,
,,,,,,,,
Детский сад,Образование,Курский,пр. Победы 3,Сидорова А.А.,В работе,Реконструкция,нет,-
ФАП Поныри,Здравоохранение,Поныровский,с. Поныри,,Проектирование,,,
`

// RegistrySemicolonCSV is the same kind of export using the semicolon delimiter.
const RegistrySemicolonCSV = `Наименование объекта;Сфера;Муниципальный район;Адрес;Куратор;Состояние
Мост;Дороги;Курский;ул. Ленина 1;Иванов;В работе
Школа;Образование;Льговский;ул. Мира 2;Петров;Завершено
`

// PartialCSV lacks the link columns and the works column.
const PartialCSV = `Объект,Район,Статус
Мост,Курский,В работе
`
