package pages

type Feature struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type Stat struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type FAQ struct {
	Q string `json:"q"`
	A string `json:"a"`
}

type AboutContent struct {
	Title        string    `json:"title"`
	Intro        string    `json:"intro"`
	MissionTitle string    `json:"missionTitle"`
	MissionText  string    `json:"missionText"`
	Features     []Feature `json:"features"`
	Stats        []Stat    `json:"stats"`
	TeamIntro    string    `json:"teamIntro"`
	TeamMedical  string    `json:"teamMedical"`
	TeamDev      string    `json:"teamDev"`
}

type ContactContent struct {
	Title         string `json:"title"`
	Intro         string `json:"intro"`
	Email1        string `json:"email1"`
	Email2        string `json:"email2"`
	Phone1        string `json:"phone1"`
	Phone2        string `json:"phone2"`
	Address1      string `json:"address1"`
	Address2      string `json:"address2"`
	WorkHours1    string `json:"workHours1"`
	WorkHours2    string `json:"workHours2"`
	ResponseTitle string `json:"responseTitle"`
	ResponseText  string `json:"responseText"`
	FAQTitle      string `json:"faqTitle"`
	FAQs          []FAQ  `json:"faqs"`
}

var DefaultAbout = AboutContent{
	Title:        "عن موقع دليل الأدوية",
	Intro:        "منصة شاملة لمتابعة أسعار الأدوية في مصر، نهدف لتوفير معلومات دقيقة ومحدثة لمساعدة المرضى والصيادلة",
	MissionTitle: "رسالتنا",
	MissionText:  "نسعى لتوفير منصة موثوقة وسهلة الاستخدام لمتابعة أسعار الأدوية في السوق المصري، مما يساعد المواطنين على اتخاذ قرارات مدروسة بشأن احتياجاتهم الطبية",
	Features: []Feature{
		{Title: "تحديث فوري", Description: "نوفر أحدث أسعار الأدوية من مصادر موثوقة مع تحديث مستمر للبيانات لضمان دقة المعلومات"},
		{Title: "معلومات موثوقة", Description: "جميع البيانات مستمدة من مصادر رسمية ومعتمدة لضمان الحصول على معلومات دقيقة وموثوقة"},
		{Title: "سهولة الاستخدام", Description: "واجهة بسيطة ومفهومة تتيح للجميع البحث والعثور على المعلومات المطلوبة بسهولة ويسر"},
	},
	Stats: []Stat{
		{Value: "1000+", Label: "دواء مسجل"},
		{Value: "50+", Label: "شركة أدوية"},
		{Value: "24/7", Label: "تحديث مستمر"},
	},
	TeamIntro:   "فريق متخصص من الصيادلة والمطورين يعمل على توفير أفضل خدمة للمستخدمين",
	TeamMedical: "صيادلة معتمدون يراجعون البيانات ويضمنون دقة المعلومات الطبية",
	TeamDev:     "مطورون متخصصون في تقنيات الويب الحديثة لضمان أفضل تجربة للمستخدم",
}

var DefaultContact = ContactContent{
	Title:         "تواصل معنا",
	Intro:         "نحن هنا لمساعدتك! تواصل معنا لأي استفسارات أو اقتراحات حول موقع دليل الأدوية",
	Email1:        "info@drugguide.com",
	Email2:        "support@drugguide.com",
	Phone1:        "+20 123 456 7890",
	Phone2:        "+20 987 654 3210",
	Address1:      "القاهرة، مصر",
	Address2:      "شارع التحرير، وسط البلد",
	WorkHours1:    "الأحد - الخميس: 9:00 ص - 6:00 م",
	WorkHours2:    "الجمعة - السبت: 10:00 ص - 4:00 م",
	ResponseTitle: "استجابة سريعة",
	ResponseText:  "نرد على جميع الاستفسارات خلال 24 ساعة",
	FAQTitle:      "الأسئلة الشائعة",
	FAQs: []FAQ{
		{Q: "كم مرة يتم تحديث الأسعار؟", A: "يتم تحديث أسعار الأدوية يومياً من المصادر الرسمية"},
		{Q: "هل الموقع مجاني؟", A: "نعم، جميع خدمات الموقع مجانية بالكامل"},
		{Q: "كيف يمكنني الإبلاغ عن خطأ؟", A: "يمكنك التواصل معنا عبر النموذج أعلاه أو البريد الإلكتروني"},
		{Q: "هل تتوفر خدمة العملاء؟", A: "نعم، فريق الدعم متاح طوال أيام الأسبوع"},
	},
}
