package messages

var turkish = map[Key]string{
	Required:              "Bu alan zorunludur",
	MinLength:             "En az {min} karakter girilmelidir",
	MaxLength:             "En fazla {max} karakter girilebilir",
	Min:                   "Değer en az {min} olmalıdır",
	Max:                   "Değer en fazla {max} olabilir",
	Email:                 "Geçerli bir e-posta adresi giriniz",
	URL:                   "Geçerli bir URL giriniz",
	IP:                    "Geçerli bir IP adresi giriniz",
	Pattern:               "Geçersiz format",
	Number:                "Geçerli bir sayı giriniz",
	Phone:                 "Geçerli bir telefon numarası giriniz (5xx...)",
	PhoneLength:           "Telefon numarası 10 haneli olmalıdır ({current}/10)",
	PhonePrefix:           "Cep telefonu 5 ile başlamalıdır",
	NationalID:            "Geçersiz TC Kimlik Numarası",
	NationalIDLength:      "TC Kimlik No 11 haneli olmalıdır ({current}/11)",
	NationalIDFirstZero:   "TC Kimlik No 0 ile başlayamaz",
	NationalIDChecksum:    "TC Kimlik Numarası doğrulanamadı",
	TaxID:                 "Geçersiz Vergi Kimlik Numarası",
	TaxIDLength:           "Vergi No 10 haneli olmalıdır ({current}/10)",
	TaxIDChecksum:         "Vergi Kimlik Numarası doğrulanamadı",
	TaxOrNationalIDLength: "10 veya 11 haneli olmalıdır ({current})",
	IBAN:                  "Geçerli bir IBAN giriniz",
	IBANLength:            "IBAN 26 karakter olmalıdır ({current}/26)",
	IBANPrefix:            "IBAN \"TR\" ile başlamalıdır",
	IBANChecksum:          "IBAN doğrulanamadı",
	Plate:                 "Geçerli bir araç plakası giriniz (Örn: 34 ABC 123)",
	PlateProvince:         "İl kodu 01-81 arasında olmalıdır",
	CreditCard:            "Geçerli bir kredi kartı numarası giriniz",
	CreditCardLength:      "Kredi kartı numarası eksik ({current}/16)",
	CreditCardChecksum:    "Kredi kartı numarası geçersiz",
	Date:                  "Geçerli bir tarih giriniz (GG.AA.YYYY)",
	DateInvalid:           "Geçersiz tarih",
	DateRange:             "Başlangıç tarihi bitişten büyük olamaz",
	Match:                 "Değerler eşleşmiyor",
	PasswordPolicy:        "Şifre kuralları karşılanmıyor",
	Time:                  "Geçerli bir saat giriniz (SS:DD)",
	MinRows:               "Lütfen en az {min} satır ekleyiniz",
	Remote:                "Bu değer kullanılamaz",
	FormInvalid:           "Lütfen formdaki hataları düzeltin",
	Invalid:               "Geçersiz değer",
}

var english = map[Key]string{
	Required:              "This field is required",
	MinLength:             "Enter at least {min} characters",
	MaxLength:             "Enter at most {max} characters",
	Min:                   "Value must be at least {min}",
	Max:                   "Value must be at most {max}",
	Email:                 "Enter a valid email address",
	URL:                   "Enter a valid URL",
	IP:                    "Enter a valid IP address",
	Pattern:               "Invalid format",
	Number:                "Enter a valid number",
	Phone:                 "Enter a valid phone number (5xx...)",
	PhoneLength:           "Phone number must have 10 digits ({current}/10)",
	PhonePrefix:           "Mobile numbers start with 5",
	NationalID:            "Invalid national ID number",
	NationalIDLength:      "National ID must have 11 digits ({current}/11)",
	NationalIDFirstZero:   "National ID cannot start with 0",
	NationalIDChecksum:    "National ID number could not be verified",
	TaxID:                 "Invalid tax ID number",
	TaxIDLength:           "Tax ID must have 10 digits ({current}/10)",
	TaxIDChecksum:         "Tax ID number could not be verified",
	TaxOrNationalIDLength: "Must have 10 or 11 digits ({current})",
	IBAN:                  "Enter a valid IBAN",
	IBANLength:            "IBAN must have 26 characters ({current}/26)",
	IBANPrefix:            "IBAN must start with \"TR\"",
	IBANChecksum:          "IBAN could not be verified",
	Plate:                 "Enter a valid vehicle plate (e.g. 34 ABC 123)",
	PlateProvince:         "Province code must be between 01 and 81",
	CreditCard:            "Enter a valid credit card number",
	CreditCardLength:      "Credit card number is incomplete ({current}/16)",
	CreditCardChecksum:    "Credit card number is invalid",
	Date:                  "Enter a valid date (DD.MM.YYYY)",
	DateInvalid:           "Invalid date",
	DateRange:             "Start date cannot be after the end date",
	Match:                 "Values do not match",
	PasswordPolicy:        "Password does not meet the policy",
	Time:                  "Enter a valid time (HH:MM)",
	MinRows:               "Add at least {min} rows",
	Remote:                "This value is not available",
	FormInvalid:           "Please fix the errors in the form",
	Invalid:               "Invalid value",
}
